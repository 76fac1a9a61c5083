package keypad_test

import (
	"context"
	"fmt"

	"github.com/aretw0/keypad"
)

func ExampleEngine_PressLine() {
	eng := keypad.New()
	ctx := context.Background()

	state := eng.Start(ctx, "example")
	state, _ = eng.PressLine(ctx, state, "2 + 3 * 4 =")
	fmt.Println(eng.Display(state).Result)

	state, _ = eng.PressLine(ctx, state, "clear 8 / 0 =")
	fmt.Println(eng.Display(state).Result)

	state, _ = eng.PressLine(ctx, state, "clear 3.5 =")
	fmt.Println(eng.Display(state).Result)
	// Output:
	// 20
	// ERROR
	// 3.5
}
