// Package entitlement persists account tiers and export history in SQLite.
// Unknown accounts resolve to the free tier; the store never blocks a
// render on a database failure.
package entitlement
