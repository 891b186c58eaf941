// crypto is the cryptographic toolbox of alexandria.
//
// The root package holds the hash primitives shared by every encoding
// (SHA-256 backed by sha256-simd, SHA-512, double SHA-256 and RIPEMD-160)
// and access to the operating system CSPRNG. The subpackages build the
// SophiaTX key formats on top of it:
//
//	base58     Base58 and Base58Check text encoding
//	secp256k1  private/public keys, brain keys, recoverable signatures
//	txhash     chain-bound transaction digests
//	memo       ECDH + AES-256-CBC memo encryption
//	wif        Wallet Import Format for private keys
//	armor      ASCII armor for exported key files
//
// Keys are generated and used like this:
//
//	privKey := secp256k1.GenPrivKey()
//	defer privKey.Zero()
//	pubKey := privKey.PubKey()
//
//	digest := txhash.Sum(chainID, serializedTx)
//	sig, err := privKey.Sign(digest.Bytes())
//	if err != nil {
//		panic(err)
//	}
//	ok := pubKey.VerifySignature(digest.Bytes(), sig)
package crypto
