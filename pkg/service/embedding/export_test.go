package embedding

var (
	EncodeVector = encodeVector
	DecodeVector = decodeVector
)
