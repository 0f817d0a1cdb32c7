package domain

type Network int

const (
	Mainnet Network = iota
	Rinkeby
)

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Rinkeby:
		return "rinkeby"
	}
	return "unknown"
}

type Environment int

const (
	Production Environment = iota
	Staging
)

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Staging:
		return "staging"
	}
	return "unknown"
}
