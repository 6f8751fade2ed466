package emojis

import "strconv"

// number emojis backing the poll reactions, the poll embed caps its
// options at ten so this covers every slot
var numbers = map[string]string{
	"1":  `1⃣`,
	"2":  `2⃣`,
	"3":  `3⃣`,
	"4":  `4⃣`,
	"5":  `5⃣`,
	"6":  `6⃣`,
	"7":  `7⃣`,
	"8":  `8⃣`,
	"9":  `9⃣`,
	"10": `🔟`,
}

var reverse map[string]string

func init() {
	reverse = make(map[string]string, len(numbers))
	for k, v := range numbers {
		reverse[v] = k
	}
}

// From returns the unicode emoji for the number symbol
func From(symbol string) string {
	return numbers[symbol]
}

// ToNumber returns the poll option behind the reaction, -1 for any
// emoji that is not one of the number reactions
func ToNumber(emoji string) int {
	v, err := strconv.Atoi(reverse[emoji])
	if err != nil {
		v = -1
	}
	return v
}
