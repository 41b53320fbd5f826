package hash

// Hash is a one-way transformation with a matching verifier.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
