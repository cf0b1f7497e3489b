package logg

const (
	Layer     = "layer"
	Operation = "operation"
	Page      = "page"
	Element   = "element"
	Selector  = "selector"
	Locator   = "locator"
	URL       = "url"
	Wait      = "wait"
	Source    = "source"
	Scenario  = "scenario"
	Index     = "index"
)
