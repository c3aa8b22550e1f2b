package result_test

import (
	"fmt"
	"strconv"

	"github.com/MasterOfBinary/gochunk/result"
)

func ExampleFrom() {
	r := result.From(strconv.Atoi("42"))
	fmt.Println(r.OrElse(0))

	r = result.From(strconv.Atoi("not a number"))
	fmt.Println(r.OrElse(0))

	// Output:
	// 42
	// 0
}

func ExampleTraverse() {
	parse := func(s string) result.Result[int] {
		return result.From(strconv.Atoi(s))
	}

	r := result.Traverse([]string{"1", "2", "3"}, parse)
	fmt.Println(r.Value())

	r = result.Traverse([]string{"1", "oops", "3"}, parse)
	fmt.Println(r.IsErr())

	// Output:
	// [1 2 3]
	// true
}

func ExampleFold() {
	sum := result.Ok(45)

	msg := result.Fold(sum,
		func(v int) string { return "total: " + strconv.Itoa(v) },
		func(err error) string { return "failed: " + err.Error() },
	)
	fmt.Println(msg)

	// Output:
	// total: 45
}
