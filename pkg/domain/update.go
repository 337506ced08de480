package domain

// Reserved update keys processed by branch nodes before ordinary children.
const (
	KeyDelete   = "_delete"
	KeyGenerate = "_generate"
	KeyDivide   = "_divide"
)

// KeyReduce is a leaf directive: the leaf receives, as its delta, the fold
// of a subtree.
const KeyReduce = "_reduce"

// Generate instantiates a new subtree under Path (relative to the node the
// directive is applied to), exactly like tree generation at startup.
type Generate struct {
	Path         Path
	Processes    Processes
	Topology     Topology
	InitialState map[string]any
}

// Daughter is one product of a division. ID is the child name the daughter
// takes under the dividing node; Path is where its processes are generated.
type Daughter struct {
	ID           string
	Path         Path
	Processes    Processes
	Topology     Topology
	InitialState map[string]any
}

// Divide splits the child named Mother into Daughters and removes it.
type Divide struct {
	Mother    string
	Daughters []Daughter
}

// Reduce folds the subtree at From, relative to the receiving leaf, with
// Reducer starting from Initial. Reducer is a registered or built-in name,
// or a reducer function.
type Reduce struct {
	From    Path
	Reducer any
	Initial any
}

// DeleteUpdate builds the update removing paths relative to a port.
func DeleteUpdate(paths ...Path) map[string]any {
	return map[string]any{KeyDelete: paths}
}

// GenerateUpdate builds the update generating subtrees relative to a port.
func GenerateUpdate(generates ...Generate) map[string]any {
	return map[string]any{KeyGenerate: generates}
}

// DivideUpdate builds the update dividing a child of a port.
func DivideUpdate(divide Divide) map[string]any {
	return map[string]any{KeyDivide: divide}
}

// ReduceUpdate builds the leaf update taking its delta from a reduction.
func ReduceUpdate(reduce Reduce) map[string]any {
	return map[string]any{KeyReduce: reduce}
}
