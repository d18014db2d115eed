package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAndSeverity_Valid(t *testing.T) {
	for _, c := range []Category{CategoryAuth, CategoryFile, CategoryFolder, CategorySystem, CategoryAccount, CategorySecurity} {
		assert.True(t, c.Valid(), c)
	}
	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Category("Pasta").Valid())
	assert.False(t, Severity("").Valid())
}

func TestEvent_WithDoesNotAlias(t *testing.T) {
	actor := uuid.New()
	base := New(time.Now(), &actor, CategoryFolder, SeverityInfo, "folder_shared", "")
	a := base.With("folder_id", "1")
	b := a.With("grantee_id", "2")

	require.NotEqual(t, uuid.Nil, base.ID)
	assert.Nil(t, base.Metadata)
	assert.Len(t, a.Metadata, 1)
	assert.Len(t, b.Metadata, 2)
	assert.Equal(t, "folder.info", b.RoutingKey())
}
