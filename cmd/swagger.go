// Package main
//
// @title           Centralink Ledger API
// @version         1.0
// @description     Crypto deposit/withdrawal requests and trade tracking with admin validation, JWT auth, audit events and metrics.
// @BasePath        /v1
//
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description Type "Bearer {token}" to authenticate.
package main
