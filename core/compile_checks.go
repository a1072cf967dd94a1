package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CustodyService      = (*Service)(nil)
	_ ClaimIssuer         = (*ClaimLedger)(nil)
	_ NonFungibleReceiver = (*Vault)(nil)
	_ EventSink           = EventSinkFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
