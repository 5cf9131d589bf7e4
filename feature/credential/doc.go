// Package credential stores remote API credentials encrypted at rest and
// manages the OAuth token lifecycle. Error messages from this package never
// carry token or secret material.
package credential
