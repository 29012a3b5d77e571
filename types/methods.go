package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	width16 byte = 2
	width32 byte = 4
)

func (tokens *Tokens) ToBin(useUint32 bool) (*[]byte, error) {
	if useUint32 {
		return tokens.ToBinUint32()
	} else {
		return tokens.ToBinUint16()
	}
}

func (tokens *Tokens) ToBinUint16() (*[]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(*tokens)*2))
	for idx := range *tokens {
		bs := (*tokens)[idx]
		if bs > 65535 {
			return nil, fmt.Errorf("integer overflow: tried to write token ID %d as unsigned 16-bit", bs)
		}
		err := binary.Write(buf, binary.LittleEndian, uint16(bs))
		if err != nil {
			return nil, err
		}
	}
	byt := buf.Bytes()
	return &byt, nil
}

func (tokens *Tokens) ToBinUint32() (*[]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(*tokens)*4))
	for idx := range *tokens {
		err := binary.Write(buf, binary.LittleEndian, uint32((*tokens)[idx]))
		if err != nil {
			return nil, err
		}
	}
	byt := buf.Bytes()
	return &byt, nil
}

func TokensFromBin(bin *[]byte) *Tokens {
	tokens := make(Tokens, 0, len(*bin)/2)
	buf := bytes.NewReader(*bin)
	for {
		var token uint16
		if err := binary.Read(buf, binary.LittleEndian, &token); err != nil {
			break
		}
		tokens = append(tokens, Token(token))
	}
	return &tokens
}

func TokensFromBin32(bin *[]byte) *Tokens {
	tokens := make(Tokens, 0, len(*bin)/4)
	buf := bytes.NewReader(*bin)
	for {
		var token uint32
		if err := binary.Read(buf, binary.LittleEndian, &token); err != nil {
			break
		}
		tokens = append(tokens, Token(token))
	}
	return &tokens
}

// MaxToken returns the largest id in the sequence, 0 when empty.
func (tokens Tokens) MaxToken() Token {
	var max Token
	for _, token := range tokens {
		if token > max {
			max = token
		}
	}
	return max
}

// GobEncode
// Stores the sequence with the narrowest width that holds every id, behind
// a single width byte.
func (tokens Tokens) GobEncode() ([]byte, error) {
	useUint32 := tokens.MaxToken() > 65535
	bin, err := tokens.ToBin(useUint32)
	if err != nil {
		return nil, err
	}
	width := width16
	if useUint32 {
		width = width32
	}
	return append([]byte{width}, *bin...), nil
}

func (tokens *Tokens) GobDecode(data []byte) error {
	if len(data) == 0 {
		return errors.New("token sequence is missing its width byte")
	}
	body := data[1:]
	switch data[0] {
	case width16:
		if len(body)%2 != 0 {
			return fmt.Errorf("token sequence of %d bytes is not 16-bit aligned", len(body))
		}
		*tokens = *TokensFromBin(&body)
	case width32:
		if len(body)%4 != 0 {
			return fmt.Errorf("token sequence of %d bytes is not 32-bit aligned", len(body))
		}
		*tokens = *TokensFromBin32(&body)
	default:
		return fmt.Errorf("unknown token width %d", data[0])
	}
	return nil
}
