package ast

// Visitor maps a normalized node type (see Node.Type) to a handler. Types
// without a handler are traversed silently.
type Visitor map[string]func(Node)

// Walk visits every named node under root, root included, exactly once in
// pre-order (source order), calling the handler registered for its type.
//
// Traversal does not depend on node types: JSX, class fields, optional
// chains, spreads and ERROR nodes of a partial tree are all descended into.
func Walk(root Node, v Visitor) {
	if root.IsZero() {
		return
	}

	cursor := root.n.Walk()
	defer cursor.Close()

	for {
		current := cursor.Node()
		if current.IsNamed() {
			node := Node{n: current, src: root.src}
			if handler, ok := v[node.Type()]; ok {
				handler(node)
			}
		}

		if cursor.GotoFirstChild() {
			continue
		}
		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return
			}
		}
	}
}
