package openapi

import "go.uber.org/zap"

// Catalog is the read-only in-memory index of operations by id.
// It is built once at startup; refreshing the catalog requires a restart.
type Catalog struct {
	byID  map[string]OperationDescriptor
	order []string // ids in insertion order, minus overwritten duplicates
}

// NewCatalog builds a catalog from the loader's output sequence.
// When two operations share an id the later one wins; the overwrite is
// logged because synthesized "<METHOD> <path>" ids can collide across files.
func NewCatalog(operations []OperationDescriptor, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{
		byID:  make(map[string]OperationDescriptor, len(operations)),
		order: make([]string, 0, len(operations)),
	}
	for _, op := range operations {
		if prev, ok := c.byID[op.ID]; ok {
			logger.Warn("duplicate operation id, keeping later definition",
				zap.String("operation_id", op.ID),
				zap.String("kept_source", op.SourceName),
				zap.String("replaced_source", prev.SourceName))
		} else {
			c.order = append(c.order, op.ID)
		}
		c.byID[op.ID] = op
	}
	return c
}

// FindByID returns the operation with the given id.
func (c *Catalog) FindByID(id string) (OperationDescriptor, bool) {
	op, ok := c.byID[id]
	return op, ok
}

// FindByTag returns all operations carrying the given tag, in catalog order.
func (c *Catalog) FindByTag(tag string) []OperationDescriptor {
	var out []OperationDescriptor
	for _, id := range c.order {
		op := c.byID[id]
		for _, t := range op.Tags {
			if t == tag {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// All returns every operation in catalog order.
func (c *Catalog) All() []OperationDescriptor {
	out := make([]OperationDescriptor, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of distinct operation ids.
func (c *Catalog) Len() int { return len(c.byID) }
