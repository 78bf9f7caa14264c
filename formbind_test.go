package formbind_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/binder"
	"github.com/goliatone/go-formbind/pkg/openapi"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

var fixture = filepath.Join("pkg", "openapi", "testdata", "profile.yaml")

func TestBindOperation(t *testing.T) {
	session, err := formbind.BindOperation(context.Background(), openapi.SourceFromFile(fixture), "createProfile")
	require.NoError(t, err)
	t.Cleanup(session.Close)

	assert.Contains(t, session.Paths(), "contact.email")
	b, ok := session.Binding("display_name")
	require.True(t, ok)
	assert.Equal(t, "Display Name", b.Field.Label)
}

func TestBindDocument(t *testing.T) {
	doc := testsupport.LoadDocument(t, fixture)

	session, err := formbind.BindDocument(context.Background(), doc, "createProfile")
	require.NoError(t, err)
	t.Cleanup(session.Close)
	assert.False(t, session.Valid())

	_, err = formbind.BindDocument(context.Background(), doc, "missing")
	assert.True(t, errors.Is(err, binder.ErrOperationNotFound))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := formbind.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "change", cfg.Form.UpdateOn)
}
