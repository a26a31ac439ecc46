/*
Package dsl provides a fluent API for building Arbor scripts in Go.

It is the programmatic counterpart of the YAML format in package script: the
result of Build is an ordinary *script.Script that can be replayed or marshaled.

	sc, err := dsl.New("branching").
		Add().
		Add().
		Select("2").
		Add().
		ExpectNodes(4).
		ExpectActive("4").
		Build()
*/
package dsl
