package ingest

import "unicode"

// naturalLess compares archive entry names the way a human orders
// pages: case-insensitive, with runs of digits compared as integers,
// so "page2.png" sorts before "page10.png".
func naturalLess(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		ca, cb := ar[i], br[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			// Compare the full numeric runs. Leading zeros make the
			// runs unequal in length but equal in value, so compare
			// values first and lengths only as a tiebreaker.
			ia, ja := i, j
			for ia < len(ar) && unicode.IsDigit(ar[ia]) {
				ia++
			}
			for ja < len(br) && unicode.IsDigit(br[ja]) {
				ja++
			}
			na := trimZeros(ar[i:ia])
			nb := trimZeros(br[j:ja])
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			for k := range na {
				if na[k] != nb[k] {
					return na[k] < nb[k]
				}
			}
			i, j = ia, ja
			continue
		}
		la, lb := unicode.ToLower(ca), unicode.ToLower(cb)
		if la != lb {
			return la < lb
		}
		i++
		j++
	}
	return len(ar)-i < len(br)-j
}

func trimZeros(digits []rune) []rune {
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	return digits
}
