// Package rnndescent builds and searches an RNN-Descent approximate
// nearest-neighbor graph: a directed kNN graph refined through relative
// neighborhood pruning and reverse-edge injection, then queried with a
// greedy best-first traversal.
//
// The package is organized around two collaborators that share a single
// DistanceComputer abstraction: Builder constructs the graph, and Searcher
// answers top-k queries against the finalized CSR representation. Index
// ties both together behind a small facade.
package rnndescent
