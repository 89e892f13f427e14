// Package model declares the contact form: its ordered fields, the loosely
// typed values posted by browsers or prompts, and the Submission payload that
// is forwarded to the intake endpoint. Field order matters; validation,
// feedback and autosave all walk fields in the order they are declared so
// errors surface top-down the same way they render on the page.
package model
