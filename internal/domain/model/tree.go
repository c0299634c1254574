package model

// 親子関係を持つノード
type Hierarchical interface {
	NodeID() int64
	NodeParentID() *int64
}

type TreeNode[T Hierarchical] struct {
	Item     T              `json:"item"`
	Children []*TreeNode[T] `json:"children"`
}

// フラットな一覧からツリーを組む。兄弟の順は入力順のまま。
// 親が見つからないノードはルート扱い。
func BuildTree[T Hierarchical](items []T) []*TreeNode[T] {
	nodes := make(map[int64]*TreeNode[T], len(items))
	for _, it := range items {
		nodes[it.NodeID()] = &TreeNode[T]{Item: it, Children: []*TreeNode[T]{}}
	}

	roots := make([]*TreeNode[T], 0)
	for _, it := range items {
		n := nodes[it.NodeID()]
		pid := it.NodeParentID()
		if pid == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*pid]
		if !ok || *pid == it.NodeID() {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

// 親から根までの祖先（近い順）
func Ancestors[T Hierarchical](items []T, id int64) []T {
	byID := make(map[int64]T, len(items))
	for _, it := range items {
		byID[it.NodeID()] = it
	}

	out := make([]T, 0)
	seen := map[int64]bool{id: true}
	cur, ok := byID[id]
	for ok {
		pid := cur.NodeParentID()
		if pid == nil || seen[*pid] {
			break
		}
		seen[*pid] = true
		cur, ok = byID[*pid]
		if ok {
			out = append(out, cur)
		}
	}
	return out
}

// 子孫のID（自分は含まない）
func DescendantIDs[T Hierarchical](items []T, id int64) []int64 {
	children := make(map[int64][]int64)
	for _, it := range items {
		if pid := it.NodeParentID(); pid != nil {
			children[*pid] = append(children[*pid], it.NodeID())
		}
	}

	out := make([]int64, 0)
	seen := map[int64]bool{id: true}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// parentIDをidの親にすると循環するか
func WouldCycle[T Hierarchical](items []T, id int64, parentID int64) bool {
	if id == parentID {
		return true
	}
	for _, d := range DescendantIDs(items, id) {
		if d == parentID {
			return true
		}
	}
	return false
}
