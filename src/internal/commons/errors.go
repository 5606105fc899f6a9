package commons

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrInsufficientBalance = errors.New("Insufficient balance")

var ErrInvalidAmount = errors.New("Amount must be greater than zero")
var ErrSelfTransfer = errors.New("Sender and receiver cannot be the same account")
var ErrAccountNotFound = errors.New("Account not found")
var ErrTransactionNotFound = errors.New("Transaction not found")
var ErrUnauthorized = errors.New("Not permitted to refund this transaction")
var ErrAlreadyRefunded = errors.New("Transaction has already been refunded")
