// Package domain defines the error vocabulary shared by persistval stores.
//
// Every failure a caller of a persisted value can observe is a DomainError
// carrying a stable code:
//
//   - PV-ARGS-*: invalid arguments (empty key)
//   - PV-DATA-*: encoding and decoding of persisted values
//   - PV-STOR-*: backend availability and write failures
//
// Codes compare with errors.Is, so callers can match on the exported
// sentinels regardless of details or wrapped causes.
package domain
