// Package common contains shared constants, error kinds and small helpers
// used across the identity service components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// RoleUser is assigned to every newly registered account.
const RoleUser = "USER"

// RoleAdmin grants access to other users' profiles.
const RoleAdmin = "ADMIN"
