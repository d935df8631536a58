package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		held RoleSet
		spec Spec
		want bool
	}{
		{
			name: "empty spec passes for any authenticated user",
			held: NewRoleSet("writer"),
			spec: Spec{},
			want: true,
		},
		{
			name: "empty spec passes with no roles at all",
			held: NewRoleSet(),
			spec: Spec{},
			want: true,
		},
		{
			name: "superuser bypasses an OR group it is not part of",
			held: NewRoleSet("superuser"),
			spec: Spec{Any: []Role{"admin", "manager"}},
			want: true,
		},
		{
			name: "superuser bypasses an AND group it cannot satisfy",
			held: NewRoleSet("superuser"),
			spec: Spec{All: []Role{"admin", "manager", "internal"}},
			want: true,
		},
		{
			name: "superuser alongside other roles still bypasses",
			held: NewRoleSet("writer", "superuser"),
			spec: Spec{Any: []Role{"admin"}, All: []Role{"manager"}},
			want: true,
		},
		{
			name: "OR group satisfied by one member",
			held: NewRoleSet("admin"),
			spec: Spec{Any: []Role{"admin", "manager"}},
			want: true,
		},
		{
			name: "OR group not satisfied",
			held: NewRoleSet("writer"),
			spec: Spec{Any: []Role{"admin", "manager"}},
			want: false,
		},
		{
			name: "AND group requires every role",
			held: NewRoleSet("admin"),
			spec: Spec{All: []Role{"admin", "manager"}},
			want: false,
		},
		{
			name: "AND group fully satisfied",
			held: NewRoleSet("admin", "manager"),
			spec: Spec{All: []Role{"admin", "manager"}},
			want: true,
		},
		{
			name: "shorthand merges into the OR group",
			held: NewRoleSet("internal"),
			spec: Spec{Shorthand: []Role{"internal"}},
			want: true,
		},
		{
			name: "shorthand widens an explicit OR group",
			held: NewRoleSet("support"),
			spec: Spec{Any: []Role{"admin"}, Shorthand: []Role{"support"}},
			want: true,
		},
		{
			name: "both groups must hold simultaneously",
			held: NewRoleSet("admin"),
			spec: Spec{Any: []Role{"admin"}, All: []Role{"admin", "manager"}},
			want: false,
		},
		{
			name: "both groups satisfied",
			held: NewRoleSet("admin", "manager"),
			spec: Spec{Any: []Role{"admin"}, All: []Role{"admin", "manager"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.held, tt.spec))
		})
	}
}

func TestRoleSet(t *testing.T) {
	s := NewRoleSet("admin", "manager")
	assert.True(t, s.Has(Admin))
	assert.True(t, s.Has(Manager))
	assert.False(t, s.Has(Superuser))
	assert.False(t, s.Has("writer"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"admin", "manager"}, Names([]Role{Admin, Manager}))
	assert.Empty(t, Names(nil))
}
