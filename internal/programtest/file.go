package programtest

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/core/account"
)

// ReadAccountData returns the contents of the file at path, refusing files
// larger than an account may hold.
func ReadAccountData(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > account.MaxPermittedDataLength {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), account.MaxPermittedDataLength)
	}
	return os.ReadFile(path)
}

// AddAccountWithFileData seeds an account holding the contents of the file
// at path, funded rent exempt. It panics if the file cannot be read.
func (p *ProgramTest) AddAccountWithFileData(addr, owner solana.PublicKey, path string, executable bool) {
	data, err := ReadAccountData(path)
	if err != nil {
		panic(fmt.Sprintf("programtest: account %s: %v", addr, err))
	}
	p.AddAccountWithData(addr, owner, data, executable)
}
