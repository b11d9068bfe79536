package layout_test

import (
	"context"
	"fmt"
	"log"

	"github.com/twinfer/combo/pkg/layout"
)

const sample = `
meta:
  id: sample
seq:
  - id: version
    type: u4
  - id: flags
    type: b4
  - id: length
    type: u8
`

// Example decodes a two byte record whose first byte packs two nibbles.
func Example() {
	l, err := layout.ParseLayout([]byte(sample))
	if err != nil {
		log.Fatal(err)
	}
	dec, err := layout.Compile(l)
	if err != nil {
		log.Fatal(err)
	}

	rec, err := dec.Decode(context.Background(), []byte{0x25, 0x10})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec["version"], rec["flags"], rec["length"])
	// Output: 2 5 16
}

func ExampleDecoder_DecodeJSON() {
	l, err := layout.ParseLayout([]byte(sample))
	if err != nil {
		log.Fatal(err)
	}
	dec, err := layout.Compile(l)
	if err != nil {
		log.Fatal(err)
	}

	out, err := dec.DecodeJSON(context.Background(), []byte{0x25, 0x10})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
	// Output:
	// {
	//   "flags": 5,
	//   "length": 16,
	//   "version": 2
	// }
}
