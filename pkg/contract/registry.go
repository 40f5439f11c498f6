package contract

// Mainnet addresses of the contracts the pages show.
const (
	BoredApeYachtClub = "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"
	CryptoPunks       = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"
	Azuki             = "0xED5AF388653567Af2F388E6224dC7C4b3241C544"
	Doodles           = "0x8a90CAb2b38dba80c64b7734e58Ee1dB38B8992e"
	Moonbirds         = "0x23581767a106ae21c074b2276D25e5C3e136a68b"
	USDT              = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	USDC              = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	UniswapV2Router   = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
)

// Descriptor names a contract on a page. Addresses are not validated here;
// New does that when the contract is read.
type Descriptor struct {
	Label   string `toml:"label" json:"label"`
	Address string `toml:"address" json:"address"`
}

// Table returns the contracts of the test page in display order. The
// caller owns the slice.
func Table() []Descriptor {
	return []Descriptor{
		{Label: "Bored Ape Yacht Club", Address: BoredApeYachtClub},
		{Label: "CryptoPunks", Address: CryptoPunks},
		{Label: "Azuki", Address: Azuki},
		{Label: "Doodles", Address: Doodles},
		{Label: "Moonbirds", Address: Moonbirds},
		{Label: "USDT", Address: USDT},
		{Label: "USDC", Address: USDC},
		{Label: "Uniswap V2 Router", Address: UniswapV2Router},
	}
}

// Home is the contract whose name the home page shows.
func Home() Descriptor {
	return Descriptor{Label: "Bored Ape Yacht Club", Address: BoredApeYachtClub}
}
