package tgadmin

// Version is the release of this build, overridden at link time with
// -ldflags "-X github.com/aretw0/tgadmin.Version=v1.2.3".
var Version = "dev"
