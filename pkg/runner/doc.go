/*
Package runner implements the interactive command loop for an Arbor session.

It reads one command per line, executes it against a session.Manager and presents
the outcome through a pluggable IOHandler. TextHandler targets humans (optionally
rendering Markdown through a ContentRenderer), JSONHandler emits one JSON document
per command for pipes and other programs.

# Commands

	add                 add a child under the active node and select it
	select <id>         make <id> the active node
	delete              remove the active subtree (deleting the root resets)
	reset               start over from a single root
	undo, redo          move through the history
	show, tree          print the tree
	nodes               list every node
	mermaid             print the tree as a Mermaid diagram
	status              print the history cursor
	help                list commands
	quit, exit          leave the loop

# Usage

	mgr := session.NewManager(arbor.New())
	r := runner.NewRunner(mgr, runner.WithRenderer(tui.NewRenderer()))
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
