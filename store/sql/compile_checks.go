package sqlstore

import (
	"github.com/goliatone/go-custody/core"
	"github.com/goliatone/go-custody/query"
)

var (
	_ core.EventSink     = (*Projector)(nil)
	_ core.EventSink     = (*EventStore)(nil)
	_ query.EventReader  = (*EventStore)(nil)
	_ BalanceSource      = (*StateReader)(nil)
	_ BalanceSource      = (*CachedBalanceReader)(nil)
	_ BalanceInvalidator = (*CachedBalanceReader)(nil)
)
