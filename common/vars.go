package common

// Version is overridden at build time with -ldflags "-X ...common.Version=<tag>".
var Version = "dev"

const PackageName = "github.com/ruteri/web3-dashboard-backend"
