package protocol

import "unicode/utf8"

// ErrorCode classifies an ErrorMessage.
type ErrorCode uint16

const (
	ErrUnknown      ErrorCode = 0x0000
	ErrInvalidFrame ErrorCode = 0x0001 // frame could not be parsed
	ErrRateLimited  ErrorCode = 0x0006
	ErrSerialize    ErrorCode = 0x0010 // arguments or result could not be encoded
	ErrTransport    ErrorCode = 0x0011 // the call never reached the handler
	ErrDeserialize  ErrorCode = 0x0012 // arguments or result could not be decoded
	ErrExecution    ErrorCode = 0x0013 // the function failed or panicked
	ErrTimeout      ErrorCode = 0x0014
	ErrNotFound     ErrorCode = 0x0102 // no function under that name
)

var errorCodeNames = map[ErrorCode]string{
	ErrInvalidFrame: "InvalidFrame",
	ErrRateLimited:  "RateLimited",
	ErrSerialize:    "Serialize",
	ErrTransport:    "Transport",
	ErrDeserialize:  "Deserialize",
	ErrExecution:    "Execution",
	ErrTimeout:      "Timeout",
	ErrNotFound:     "NotFound",
}

func (ec ErrorCode) String() string {
	if name, ok := errorCodeNames[ec]; ok {
		return name
	}
	return "Unknown"
}

// ErrorMessage is a failure as it travels on the wire, inside Response
// frames and error envelopes. Layout: uint16 code, string message, bool fatal.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	// Fatal asks the peer to close the connection.
	Fatal bool
}

func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

func (em *ErrorMessage) Error() string {
	s := em.Code.String() + ": " + em.Message
	if em.Fatal {
		return "fatal: " + s
	}
	return s
}

func (em *ErrorMessage) IsFatal() bool { return em.Fatal }

// EncodeErrorMessage returns the wire form of em.
func EncodeErrorMessage(em *ErrorMessage) ([]byte, error) {
	e := NewEncoderWithCap(4 + len(em.Message))
	if err := EncodeErrorMessageTo(e, em); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// EncodeErrorMessageTo appends em to e. The message must be valid UTF-8.
func EncodeErrorMessageTo(e *Encoder, em *ErrorMessage) error {
	if !utf8.ValidString(em.Message) {
		return ErrInvalidUTF8
	}
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return nil
}

// DecodeErrorMessage parses data, which must hold one message and nothing else.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	em, err := DecodeErrorMessageFrom(d)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, err
	}
	return em, nil
}

// DecodeErrorMessageFrom reads one message from d.
func DecodeErrorMessageFrom(d *Decoder) (*ErrorMessage, error) {
	var (
		em   ErrorMessage
		code uint16
		err  error
	)
	if code, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	em.Code = ErrorCode(code)
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &em, nil
}
