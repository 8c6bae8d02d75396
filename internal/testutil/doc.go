// Package testutil holds shared test doubles and blueprint builders.
package testutil
