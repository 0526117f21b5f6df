package lang_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardnew/tomlc/lang"
)

func ExampleCompile() {
	out, err := lang.Compile(
		context.Background(),
		`name <- 5; sur <- #{name 2 +}; test <- $[ key: list(1, 2, $[ nestedkey: "value" ]) ];`,
	)
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Print(string(out))
	// Output:
	// name = 5
	// sur = 7
	//
	// [test]
	// key = [1, 2, {nestedkey = 'value'}]
}

func ExampleParseString_error() {
	_, err := lang.ParseString(context.Background(), "x <- #{y 1 +};")

	fmt.Println(errors.Is(err, lang.ErrUnknownIdentifier))
	fmt.Println(err)
	// Output:
	// true
	// line 1, column 8: unknown identifier: name=y
}
