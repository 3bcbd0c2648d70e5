package domain

// CodeLength is the number of digits in a login verification code.
const CodeLength = 6
