package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		values Values
		want   map[string]string
	}{
		{
			name:   "both fields present",
			values: Values{Username: "alice", Password: "secret"},
			want:   nil,
		},
		{
			name:   "missing username",
			values: Values{Username: "", Password: "secret"},
			want:   map[string]string{FieldUsername: "Username is required."},
		},
		{
			name:   "missing password",
			values: Values{Username: "alice", Password: ""},
			want:   map[string]string{FieldPassword: "Password is required."},
		},
		{
			name:   "both missing",
			values: Values{},
			want: map[string]string{
				FieldUsername: "Username is required.",
				FieldPassword: "Password is required.",
			},
		},
		{
			name:   "whitespace counts as a value",
			values: Values{Username: " ", Password: " "},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.values)
			if tt.want == nil {
				assert.True(t, got.Empty(), "expected no errors, got %v", got)
				return
			}
			assert.Equal(t, len(tt.want), len(got))
			for field, msg := range tt.want {
				assert.Equal(t, msg, got[field])
			}
		})
	}
}

func TestValuesCredentials(t *testing.T) {
	creds := Values{Username: "alice", Password: "secret"}.Credentials()
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "secret", creds.Password)
	assert.NotContains(t, creds.String(), "secret")
}
