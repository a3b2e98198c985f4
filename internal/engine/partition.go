package engine

// partition splits pairs into independent components: two pairs belong to
// the same component when they share a group or an eligible teacher.
// Components come back ordered by their first pair, pair indices ascending.
func partition(pairs []*pair) [][]int {
	uf := make([]int, len(pairs))
	for i := range uf {
		uf[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if uf[x] != x {
			uf[x] = find(uf[x])
		}
		return uf[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			uf[rb] = ra
		} else {
			uf[ra] = rb
		}
	}

	byGroup := map[int]int{}
	byTeacher := map[int]int{}
	for i, pr := range pairs {
		if first, ok := byGroup[pr.group]; ok {
			union(first, i)
		} else {
			byGroup[pr.group] = i
		}
		for _, t := range pr.teachers {
			if first, ok := byTeacher[t]; ok {
				union(first, i)
			} else {
				byTeacher[t] = i
			}
		}
	}

	index := map[int]int{}
	var components [][]int
	for i := range pairs {
		root := find(i)
		c, ok := index[root]
		if !ok {
			c = len(components)
			index[root] = c
			components = append(components, nil)
		}
		components[c] = append(components[c], i)
	}
	return components
}
