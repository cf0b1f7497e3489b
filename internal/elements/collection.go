package elements

import (
	"context"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"

	"go.uber.org/zap"
)

// Collection wraps a locator matching multiple nodes: table rows, menu
// entries, search results. Indexing is zero-based and checked against the
// live match count.
type Collection struct {
	Base
}

func NewCollection(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Collection, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Collection{Base: base}, nil
}

func (c *Collection) Size(ctx context.Context) (int, error) {
	if err := c.ready(ctx); err != nil {
		return 0, err
	}

	return c.driver.Count(ctx, c.selector.Native())
}

func (c *Collection) IsEmpty(ctx context.Context) (bool, error) {
	count, err := c.driver.Count(ctx, c.selector.Native())
	if err != nil {
		return false, err
	}

	return count == 0, nil
}

func (c *Collection) GetAllTexts(ctx context.Context) ([]string, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}

	return c.driver.AllTexts(ctx, c.selector.Native())
}

// GetElementAt binds one match by index. The bound item re-resolves on each
// use, so it stays valid across DOM refreshes as long as the index does.
func (c *Collection) GetElementAt(ctx context.Context, index int) (*Item, error) {
	const op = "Collection.GetElementAt"

	count, err := c.Size(ctx)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= count {
		return nil, apperr.Wrap(op, apperr.CodeElementNotFound, nil, map[string]any{
			apperr.MetaElement: c.name,
			apperr.MetaIndex:   index,
			apperr.MetaReason:  "index_out_of_range",
			"size":             count,
		})
	}

	return &Item{collection: c, index: index}, nil
}

func (c *Collection) GetFirst(ctx context.Context) (*Item, error) {
	return c.GetElementAt(ctx, 0)
}

func (c *Collection) GetLast(ctx context.Context) (*Item, error) {
	count, err := c.Size(ctx)
	if err != nil {
		return nil, err
	}

	return c.GetElementAt(ctx, count-1)
}

func (c *Collection) ClickElementAt(ctx context.Context, index int) error {
	item, err := c.GetElementAt(ctx, index)
	if err != nil {
		return err
	}

	return item.Click(ctx)
}

// Item is one member of a collection, addressed by index.
type Item struct {
	collection *Collection
	index      int
}

func (i *Item) Index() int {
	return i.index
}

func (i *Item) GetText(ctx context.Context) (string, error) {
	return i.collection.driver.TextAt(ctx, i.collection.selector.Native(), i.index)
}

func (i *Item) Click(ctx context.Context) error {
	const op = "Item.Click"

	i.collection.logger.Info("Element action",
		zap.String(logg.Operation, op),
		zap.Int(logg.Index, i.index))

	err := i.collection.driver.ClickAt(ctx, i.collection.selector.Native(), i.index)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaElement: i.collection.name,
			apperr.MetaIndex:   i.index,
		})
	}

	return nil
}
