package worksheet

import "errors"

var (
	ErrWorksheetNotFound = errors.New("worksheet not found")
	ErrAlreadyExists     = errors.New("worksheet already exists for this date")
	ErrNotEditable       = errors.New("cannot edit a worksheet after submission")
	ErrCannotSubmit      = errors.New("worksheet has already been submitted")
	ErrCannotVerify      = errors.New("only submitted worksheets can be verified")
	ErrCannotApprove     = errors.New("only tl-verified worksheets can be approved")
	ErrCannotReject      = errors.New("only submitted or tl-verified worksheets can be rejected")
	ErrNotOwner          = errors.New("you can only modify your own worksheets")
	ErrNotYourReport     = errors.New("worksheet does not belong to one of your reports")
	ErrConcurrentUpdate  = errors.New("worksheet changed concurrently")
)
