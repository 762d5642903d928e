// Package presentation maps resolved pedigrees into display trees and owns
// the view-only zoom state.
//
// [Build] is a pure, total mapping: the same pedigree and selection always
// yield the same presentation tree, with exactly one presentation node per
// pedigree node and children ordered mother then father. Presentation trees
// are disposable and rebuilt wholesale whenever the pedigree changes.
//
//	view := presentation.Build(tree, tree.Identifier)
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//
// [ViewState] tracks the zoom scale of one display session.
package presentation
