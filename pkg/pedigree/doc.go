// Package pedigree resolves flat parent-pointer animal records into a
// depth-bounded ancestry tree.
//
// # Overview
//
// A pedigree is rooted at one animal (depth 0). Each node has at most two
// children: its mother and its father, one generation further back. The
// tree is a tree, not a graph: when a line is inbred the shared ancestor
// appears once per path that reaches it.
//
// # Resolution
//
// [Resolver.Resolve] descends one generation at a time, issuing a single
// batched repository call per level:
//
//	res := pedigree.NewResolver(repo, pedigree.Options{Logger: logger})
//	tree, err := res.Resolve(ctx, rootID, 3)
//
// The generation count is clamped to [MinGenerations, MaxGenerations].
// Missing parent references, dangling references and references that would
// revisit an animal already on the path from the root all resolve to an
// absent parent rather than an error. Only an unknown root fails.
//
// # Loading
//
// [Loader] holds the tree a session is currently looking at. Starting a new
// load supersedes any load still in flight; a superseded load returns
// [ErrSuperseded] and leaves the current tree untouched.
package pedigree
