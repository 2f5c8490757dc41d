package world

// Walkable reports whether a cell may be entered.
type Walkable func(Position) bool

// NextStep returns the first cell on a shortest orthogonal path from start to
// goal, or false if goal is unreachable. The goal itself need not be walkable.
func NextStep(start, goal Position, walkable Walkable) (Position, bool) {
	if start == goal {
		return start, false
	}

	parent := map[Position]Position{start: start}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		for _, dir := range Cardinals {
			next := cur.Add(dir)
			if _, seen := parent[next]; seen {
				continue
			}
			if next != goal && !walkable(next) {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}

	if _, ok := parent[goal]; !ok {
		return start, false
	}
	step := goal
	for parent[step] != start {
		step = parent[step]
	}
	return step, true
}

// Flood returns every cell reachable from start through walkable cells,
// start included.
func Flood(start Position, walkable Walkable) map[Position]bool {
	seen := map[Position]bool{start: true}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dir := range Cardinals {
			next := cur.Add(dir)
			if seen[next] || !walkable(next) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}
