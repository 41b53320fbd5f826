// Package mail sends email messages.
//
// Callers work with the Mail interface and the Message payload. SMTP delivers
// for real; Log only records that a message would have been sent, which is
// what local and test environments use.
package mail
