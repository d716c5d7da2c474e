package hash

// Hasher hashes secrets and checks plain text against a stored hash.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) (bool, error)
}
