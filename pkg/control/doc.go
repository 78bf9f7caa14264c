// Package control holds the model side of a form binding: FormControl values
// with their dirty/touched flags, pending view edits, update-timing policy and
// validation status, plus FormGroup containers that aggregate child values and
// statuses. Controls are not safe for concurrent use; every mutation is
// expected to happen on the goroutine that drains the host's task queue.
package control
