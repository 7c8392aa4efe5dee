// Package sdk is a small client for the Visacheck API.
//
// Clients are immutable once built. Per request authorization is expressed by
// deriving a token scoped copy with WithToken instead of changing a shared
// credential:
//
//	base, _ := sdk.New(sdk.Config{Environment: sdk.EnvStaging, ClientID: "1"})
//	resp, err := base.WithToken(token).
//		CreateUserResource("42").
//		Relationships("company").
//		Send(ctx, "get")
package sdk
