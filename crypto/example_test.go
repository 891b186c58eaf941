package crypto_test

import (
	"fmt"

	"github.com/sophiatx/alexandria/crypto"
)

func ExampleSha256() {
	sum := crypto.Sha256([]byte("abc"))
	fmt.Printf("%x\n", sum)
	// Output:
	// ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad
}

func ExampleRipemd160() {
	sum := crypto.Ripemd160([]byte("abc"))
	fmt.Printf("%x\n", sum)
	// Output:
	// 8eb208f7e05d987a9b044a8e98c6b087f15a0bfc
}
