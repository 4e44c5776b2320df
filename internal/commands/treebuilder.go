package commands

// TreeBuilder renders depth-limited directory listings using configured options.
type TreeBuilder struct {
	MaxDepth             int
	MaxItemsPerDirectory int
	IncludeHidden        bool
}
