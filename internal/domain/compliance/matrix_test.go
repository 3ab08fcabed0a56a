package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEUDRApplicable_HornHoofAlwaysExcluded(t *testing.T) {
	assert.False(t, EUDRApplicable("0506.90"))
	assert.False(t, EUDRApplicable("0507.10"))
}

func TestEUDRApplicable_CommodityPrefixes(t *testing.T) {
	assert.True(t, EUDRApplicable("1801.00"))
	assert.True(t, EUDRApplicable("0901.21"))
	assert.False(t, EUDRApplicable("0714.10"))
}

func TestMatrix_LookupByProductType(t *testing.T) {
	m := New(DefaultPolicies())
	p, err := m.Lookup("horn_hoof", "0506.90")
	require.NoError(t, err)
	assert.False(t, p.EUDRApplicable)
	assert.Contains(t, p.RequiredDocumentTypes, "eu_traces")
}

func TestMatrix_ReloadSwapsSnapshotVersion(t *testing.T) {
	m := New(DefaultPolicies())
	v1 := m.Version()
	m.Reload(DefaultPolicies())
	assert.Greater(t, m.Version(), v1)
}

func TestMatrix_UnknownProductFallsBackToHSPrefix(t *testing.T) {
	m := New(DefaultPolicies())
	p, err := m.Lookup("unregistered_product", "1801.99")
	require.NoError(t, err)
	assert.True(t, p.EUDRApplicable)
}
