package crypto

// Zero overwrites b with zeros. Secret key material is wiped as soon as the
// owning operation no longer needs it.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
