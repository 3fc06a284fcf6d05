package dagcbor_test

import (
	"encoding/hex"
	"fmt"

	"github.com/hyphacoop/go-dagcbor/dagcbor"
	"github.com/hyphacoop/go-dagcbor/value"
)

func ExampleMarshal() {
	v := value.NewMap([]value.Entry{
		{Key: "name", Value: value.NewText("Ada")},
		{Key: "age", Value: value.NewInt(36)},
	})
	b, err := dagcbor.Marshal(v)
	if err != nil {
		panic(err)
	}
	// Keys come out in the canonical order: "age" is shorter than "name".
	fmt.Printf("%x\n", b)
	// Output: a2636167651824646e616d6563416461
}

func ExampleUnmarshal() {
	data, _ := hex.DecodeString("a2636167651824646e616d6563416461")
	v, err := dagcbor.Unmarshal(data)
	if err != nil {
		panic(err)
	}
	name, _ := v.Lookup("name")
	s, _ := name.Text()
	age, _ := v.Lookup("age")
	n, _ := age.Int()
	fmt.Println(s, n)
	// Output: Ada 36
}

func ExampleCalculateCid() {
	v := value.NewArray(value.NewText("hello"), value.NewText("world"))
	c, err := dagcbor.CalculateCid(v)
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Prefix().Version)
	// Output: 1
}
