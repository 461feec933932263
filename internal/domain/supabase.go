package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient wraps the Supabase connection used for operation history and auth.
type SupabaseClient interface {
	Initialize() error
	Enabled() bool
	ValidateToken(token string) (*SupabaseUser, error)

	DB() *supabase.Client
}
