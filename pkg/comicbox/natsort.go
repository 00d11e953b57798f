package comicbox

// naturalLess compares two strings with embedded numbers the way a human
// orders pages: "p2.jpg" sorts before "p10.jpg". Digit runs are compared
// by numeric magnitude, everything else byte-wise.
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			// Skip leading zeros so "002" and "2" compare equal in magnitude.
			si, sj := i, j
			for si < len(a) && a[si] == '0' {
				si++
			}
			for sj < len(b) && b[sj] == '0' {
				sj++
			}

			ei, ej := si, sj
			for ei < len(a) && isDigit(a[ei]) {
				ei++
			}
			for ej < len(b) && isDigit(b[ej]) {
				ej++
			}

			// Longer digit run is the larger number.
			if li, lj := ei-si, ej-sj; li != lj {
				return li < lj
			}
			if da, db := a[si:ei], b[sj:ej]; da != db {
				return da < db
			}

			i, j = ei, ej
			continue
		}

		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
