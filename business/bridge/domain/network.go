// Package domain contains the bridge context's value types.
package domain

import "fmt"

// Network is one chain deployment of a token, as the bridge sees it.
type Network struct {
	// Key is the configuration key the network was declared under.
	Key string
	// Name is the human chain name used in messages and dedup IDs.
	Name     string
	ChainID  uint64
	Decimals int32
	Token    string
}

// String renders the network for logs.
func (n Network) String() string {
	return fmt.Sprintf("%s(%d) %s", n.Name, n.ChainID, n.Token)
}

// Route is an ordered source/destination pair.
type Route struct {
	In  Network
	Out Network
}

// Key identifies the route by chain names, e.g. "Ethereum->Optimism".
func (r Route) Key() string {
	return r.In.Name + "->" + r.Out.Name
}
