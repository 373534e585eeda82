package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Constants(t *testing.T) {
	assert.Equal(t, Role("student"), RoleStudent)
	assert.Equal(t, Role("teacher"), RoleTeacher)
	assert.Equal(t, Role("admin"), RoleAdmin)
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("principal").Valid())
}

func TestRole_CanTeach(t *testing.T) {
	assert.False(t, RoleStudent.CanTeach())
	assert.True(t, RoleTeacher.CanTeach())
	assert.True(t, RoleAdmin.CanTeach())
	assert.False(t, Role("unknown").CanTeach())
}
