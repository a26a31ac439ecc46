/*
Package script loads and replays YAML command scripts against an Arbor session.

A script is a list of steps, each naming one session command, plus an optional
expectation checked after the last step:

	name: scenario
	steps:
	  - add
	  - add
	  - op: select
	    id: "2"
	  - add
	  - delete
	  - undo
	expect:
	  nodes: 3
	  active: "3"
	  next_id: 4

Steps may be written as a mapping ({op, id}) or as a plain command line ("select 2").
*/
package script
