// Package sms delivers text messages through an HTTP gateway.
//
// Gateway sends are retried with a capped fibonacci backoff on network errors
// and 5xx/429 responses. 4xx responses are final.
package sms
