package transform

const (
	NameSquare = "square"
	NameDouble = "double"
)

func init() {
	mustRegister(NameSquare, Square)
	mustRegister(NameDouble, Double)
}

// Square replaces every element with its square.
func Square(segment []int64) {
	for i, v := range segment {
		segment[i] = v * v
	}
}

// Double replaces every element with twice its value.
func Double(segment []int64) {
	for i, v := range segment {
		segment[i] = v * 2
	}
}

func mustRegister(name string, fn Func) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}
