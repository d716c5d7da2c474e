package auth

const MsgTokenIssued = "Token issued."
