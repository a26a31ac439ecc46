package arbor_test

import (
	"fmt"

	"github.com/aretw0/arbor"
)

func Example() {
	s := arbor.New()

	s.AddChildToActive()
	s.AddChildToActive()
	s.DeleteActiveNode()
	fmt.Println("after delete:", len(s.AllNodes()), "nodes, active", s.ActiveNodeID())

	s.Undo()
	fmt.Println("after undo:", len(s.AllNodes()), "nodes, active", s.ActiveNodeID())

	s.SelectNode("1")
	s.DeleteActiveNode()
	fmt.Println("after root delete:", len(s.AllNodes()), "node, next id", s.NextNodeID())

	// Output:
	// after delete: 2 nodes, active 2
	// after undo: 3 nodes, active 3
	// after root delete: 1 node, next id 2
}
