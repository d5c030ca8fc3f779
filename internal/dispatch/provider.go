package dispatch

import (
	"github.com/google/wire"
)

// ProviderSet 分发Provider集合
var ProviderSet = wire.NewSet(
	ProvidePool,
)
