package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, NormalizeRole("Admin"))
	assert.Equal(t, RoleAssetManager, NormalizeRole("assetManager"))
	assert.Equal(t, RoleAssetManager, NormalizeRole("dduAssetManager"))
	assert.Equal(t, RoleAssetManager, NormalizeRole("IotAssetManager"))
	assert.Equal(t, RoleStaff, NormalizeRole(" staff "))
}

func TestNormalizeDepartment(t *testing.T) {
	assert.Equal(t, "DDU", NormalizeDepartment("ddu"))
	assert.Equal(t, "IOT", NormalizeDepartment("IoT"))
	assert.Equal(t, "IOT", NormalizeDepartment(" iot "))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("admin"))
	assert.True(t, ValidRole("assetManager"))
	assert.True(t, ValidRole("staff"))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}

func TestValidDepartment(t *testing.T) {
	assert.True(t, ValidDepartment("DDU"))
	assert.True(t, ValidDepartment("IoT"))
	assert.False(t, ValidDepartment("CS"))
}

func TestCanManageDepartment(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		actorDept  string
		targetDept string
		want       bool
	}{
		{"admin any department", "admin", "DDU", "IOT", true},
		{"manager own department", "assetManager", "DDU", "DDU", true},
		{"manager case mismatch still matches", "AssetManager", "ddu", "DDU", true},
		{"manager other department", "assetManager", "DDU", "IOT", false},
		{"staff never", "staff", "DDU", "DDU", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManageDepartment(tt.role, tt.actorDept, tt.targetDept))
		})
	}
}
